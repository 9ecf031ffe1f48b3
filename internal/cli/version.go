package cli

import (
	"context"
	"fmt"

	"github.com/hullworks/slipway/internal"
)

// Represents the 'slipway version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
