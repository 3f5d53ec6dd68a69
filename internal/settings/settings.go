package settings

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/containerd/platforms"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/cruciblehq/blackmagic/internal/paths"
)

// Container runtime drivers.
const (
	RuntimeAPI = "api" // Docker Engine API over the daemon socket.
	RuntimeCLI = "cli" // The docker command-line client.
)

const (

	// Pinned toolchain image the builder image is derived from.
	DefaultToolchainImage = "registry.gitlab.com/rust_musl_docker/image:nightly-2020-04-23"

	// Name of the reusable builder image.
	DefaultBuilderImage = "black_magic"

	// Cross-compilation target triple.
	DefaultTarget = "x86_64-unknown-linux-musl"

	// Prefix of the project image tag in docker mode.
	DefaultImagePrefix = "bm_"

	// Name the binary is renamed to inside the lambda archive.
	DefaultEntrypoint = "bootstrap"

	// Platform of the builder container.
	DefaultPlatform = "linux/amd64"

	// Project manifest that marks a project root.
	DefaultManifest = "Cargo.toml"

	// Docker client binary used by the CLI driver.
	DefaultDockerBinary = "docker"
)

// Effective configuration for a build.
type Settings struct {
	Runtime         string `yaml:"runtime"`          // Container runtime driver, [RuntimeAPI] or [RuntimeCLI].
	DockerBinary    string `yaml:"docker_binary"`    // Docker client binary for the CLI driver.
	ToolchainImage  string `yaml:"toolchain_image"`  // Base image of the builder image, pinned to a snapshot tag.
	BuilderImage    string `yaml:"builder_image"`    // Name of the builder image.
	Target          string `yaml:"target"`           // Cargo target triple.
	ImagePrefix     string `yaml:"image_prefix"`     // Prefix of project image tags.
	Entrypoint      string `yaml:"entrypoint"`       // Binary name inside the lambda archive.
	Platform        string `yaml:"platform"`         // OCI platform of the builder container (e.g., "linux/amd64").
	OutputDir       string `yaml:"output_dir"`       // Build-output directory, relative to the project root.
	Manifest        string `yaml:"manifest"`         // Manifest file name that marks a project root.
	CargoHome       string `yaml:"cargo_home"`       // Cargo home on the host. Empty uses [paths.CargoHome].
	VerifyArtifacts bool   `yaml:"verify_artifacts"` // Whether packaged artifacts are inspected after a build.
}

// Returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Runtime:         RuntimeAPI,
		DockerBinary:    DefaultDockerBinary,
		ToolchainImage:  DefaultToolchainImage,
		BuilderImage:    DefaultBuilderImage,
		Target:          DefaultTarget,
		ImagePrefix:     DefaultImagePrefix,
		Entrypoint:      DefaultEntrypoint,
		Platform:        DefaultPlatform,
		OutputDir:       paths.DefaultOutputDir,
		Manifest:        DefaultManifest,
		VerifyArtifacts: true,
	}
}

// Loads settings from the YAML file at path on top of [Defaults].
//
// When path is empty the default location from [paths.ConfigFile] is used and
// a missing file yields the defaults. An explicitly named file must exist.
// Keys absent from the file keep their default values.
func Load(fs afero.Fs, path string) (Settings, error) {
	s := Defaults()

	explicit := path != ""
	if !explicit {
		path = paths.ConfigFile()
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, errors.Wrapf(err, "load settings")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, errors.Wrapf(err, "load settings %s", path)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, errors.Wrapf(err, "%s", path)
	}

	return s, nil
}

// Checks that every field holds a usable value.
func (s Settings) Validate() error {
	switch s.Runtime {
	case RuntimeAPI, RuntimeCLI:
	default:
		return errors.Wrapf(ErrInvalid, "runtime %q is not one of %q, %q", s.Runtime, RuntimeAPI, RuntimeCLI)
	}

	required := []struct {
		key, value string
	}{
		{"toolchain_image", s.ToolchainImage},
		{"builder_image", s.BuilderImage},
		{"target", s.Target},
		{"entrypoint", s.Entrypoint},
		{"platform", s.Platform},
		{"output_dir", s.OutputDir},
		{"manifest", s.Manifest},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.Wrapf(ErrInvalid, "%s must not be empty", r.key)
		}
	}

	if s.Runtime == RuntimeCLI && strings.TrimSpace(s.DockerBinary) == "" {
		return errors.Wrap(ErrInvalid, "docker_binary must not be empty with the cli runtime")
	}

	if strings.ContainsAny(s.Entrypoint, `/\`) {
		return errors.Wrapf(ErrInvalid, "entrypoint %q must be a file name", s.Entrypoint)
	}

	if _, err := platforms.Parse(s.Platform); err != nil {
		return errors.Wrapf(ErrInvalid, "platform %q: %v", s.Platform, err)
	}

	return nil
}

// Returns the cargo home directory, resolving the default when unset.
func (s Settings) ResolvedCargoHome() string {
	if s.CargoHome != "" {
		return s.CargoHome
	}
	return paths.CargoHome()
}

// Encodes the settings as YAML.
func (s Settings) YAML() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return "", errors.Wrap(err, "encode settings")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "encode settings")
	}
	return buf.String(), nil
}
