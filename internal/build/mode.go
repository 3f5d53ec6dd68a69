package build

// Artifact shape produced by a build.
type Mode int

const (
	ModeUnknown Mode = iota // No mode selected; never valid.
	ModeLambda              // Function archive with a single entrypoint binary.
	ModeDocker              // Minimal image holding only the binary.
)

// Returns the lowercase name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLambda:
		return "lambda"
	case ModeDocker:
		return "docker"
	default:
		return "unknown"
	}
}

// Returns true for [ModeLambda] and [ModeDocker].
func (m Mode) Valid() bool {
	return m == ModeLambda || m == ModeDocker
}

// Resolves the mode from the two selection flags.
//
// Exactly one flag must be set. Selecting neither or both is a configuration
// error wrapping [ErrInvalidMode].
func ParseMode(lambda, docker bool) (Mode, error) {
	switch {
	case lambda && !docker:
		return ModeLambda, nil
	case docker && !lambda:
		return ModeDocker, nil
	default:
		return ModeUnknown, NewError(KindConfiguration, ErrInvalidMode)
	}
}
