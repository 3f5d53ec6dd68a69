package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal/build"
	"github.com/cruciblehq/blackmagic/internal/settings"
)

// Represents the 'blackmagic config' command.
type ConfigCmd struct{}

// Prints the settings a build would use, after the config file is applied.
func (c *ConfigCmd) Run(ctx context.Context) error {
	s, err := settings.Load(afero.NewOsFs(), RootCmd.Config)
	if err != nil {
		return build.NewError(build.KindConfiguration, err)
	}

	out, err := s.YAML()
	if err != nil {
		return err
	}

	fmt.Print(out)
	return nil
}
