// Package settings loads the tool configuration.
//
// Settings are read from a YAML file (by default
// $XDG_CONFIG_HOME/blackmagic/config.yaml) on top of built-in defaults. A
// missing default file is not an error; a missing file that was named
// explicitly is. Command-line flags are applied by the caller after loading.
//
// The pinned toolchain image lives here rather than in the binary so that
// moving to a newer toolchain snapshot is a configuration change.
//
// Example configuration:
//
//	runtime: api
//	toolchain_image: registry.gitlab.com/rust_musl_docker/image:nightly-2020-04-23
//	builder_image: black_magic
//	target: x86_64-unknown-linux-musl
//	image_prefix: bm_
package settings
