// Package build cross-compiles a Rust project inside a builder container and
// packages the binary.
//
// [Run] drives the pipeline. It validates the build mode and settings before
// touching anything, probes the container runtime, and resolves the project
// from its manifest. It then takes the host lock, makes sure the reusable
// builder image exists, binds the project root and the cargo caches into a
// builder container, and runs a single chained command that compiles the
// project and performs the in-container half of packaging. In lambda mode
// that produces <project>.zip holding one entrypoint binary. In docker mode
// it produces <project>.tar.gz, after which a FROM scratch image tagged with
// the image prefix and project name is built from it.
//
// Progress is tracked through the states Idle, EnvironmentChecked,
// BuilderImageReady, Compiled, and finally Packaged or Failed. Failures are
// reported as [Error] values whose [Kind] maps to a process exit code through
// [ExitCode]. Failures of external invocations carry the reproducible command
// line and captured output. Nothing is retried and nothing already created is
// cleaned up.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Mode:     build.ModeLambda,
//	    Root:     "/src/hello",
//	    Settings: settings.Defaults(),
//	    LockPath: paths.LockFile(),
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Artifact)
package build
