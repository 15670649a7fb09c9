package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carlux/carlux-inventory/internal/app"
	_ "github.com/carlux/carlux-inventory/testing"
)

func TestMainSkipsRuntimeInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())

	// Returns immediately instead of dialing Redis and binding a port.
	main()
}
