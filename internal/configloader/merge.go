package configloader

import "github.com/yaklabco/aspp/pkg/config"

// merge combines two configurations, with override taking precedence over base.
//   - Scalars: override wins if it is non-zero
//   - Booleans: override can only switch a setting on
//   - Slices: override replaces base entirely if non-nil
//
// CLI-only fields (Name, Output) follow the scalar rule.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.OutputDir != "" {
		result.OutputDir = override.OutputDir
	}
	if override.OutputExt != "" {
		result.OutputExt = override.OutputExt
	}
	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Output != "" {
		result.Output = override.Output
	}

	// A false in a config file is indistinguishable from an absent key.
	// ASPP_SYNC=false is the way to switch these off again.
	if override.Sync {
		result.Sync = true
	}
	if override.Detect {
		result.Detect = true
	}
	if override.Rewrite {
		result.Rewrite = true
	}
	if override.Preamble {
		result.Preamble = true
	}

	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
