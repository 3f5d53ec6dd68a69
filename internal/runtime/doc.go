// Package runtime drives the container engine used to compile and package
// projects.
//
// A [Runtime] probes the engine, inspects and builds images, and runs shell
// commands in short-lived containers with host directories bound in. Two
// drivers are provided. [Engine] talks to the daemon through the Docker
// Engine API, streaming build contexts as tar archives and demultiplexing
// container logs. [CLI] executes the docker command-line client and is kept
// for hosts where only the binary is usable; it recognizes missing images by
// the client's "No such image" message.
//
// Every invocation yields a [Result] holding captured output, the exit code,
// and a reproducible docker command line that can be pasted into a shell to
// repeat the step by hand. A non-zero exit code is reported through the
// result, not as an error.
//
// Example usage:
//
//	rt, err := runtime.NewEngine(os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	if !rt.Available(ctx) {
//	    return errors.New("docker is not available")
//	}
//
//	res, err := rt.Run(ctx, runtime.RunOptions{
//	    Image:   "black_magic",
//	    Mounts:  []runtime.Mount{{Source: "/src/hello", Target: runtime.Workdir}},
//	    Workdir: runtime.Workdir,
//	    Command: "cargo build --release",
//	})
//	if err != nil {
//	    return err
//	}
//	if !res.Success() {
//	    fmt.Println(res.Command)
//	}
package runtime
