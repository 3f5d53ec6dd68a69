// Parses flags, configures logging, and runs blackmagic commands.
//
// The build command is the default and accepts the following flags:
//
//	-l, --lambda      Package the binary as <name>.zip with a single bootstrap entry.
//	-d, --docker      Package the binary as a FROM-scratch image tagged bm_<name>.
//	-C, --dir         Project root instead of the current directory.
//	    --runtime     Container runtime driver, api or cli.
//	    --toolchain   Toolchain image (also BLACKMAGIC_TOOLCHAIN).
//	    --no-lock     Skip the per-host build lock.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output and stream container output.
//	    --debug     Enable debug output.
//	    --config    Settings file path.
//
// Flags override the settings file, which overrides built-in defaults. After
// parsing, the global logger is reconfigured to reflect the final level and
// verbosity before the command runs. On failure the artifact-producing
// command, when there is one, is printed so it can be rerun by hand.
package cli
