package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current schema version of the global config file. Bump when making
// breaking changes to model.GlobalConfig.
//
// CHECKLIST when bumping:
//  1. Update the constant below
//  2. Add an entry to MinWalletVersion (tested by TestMinWalletVersionCompleteness)
//
// The persisted "cards" payload deliberately carries no version: its shape is
// shared with wallets written by earlier releases.
const CurrentGlobalVersion = 1

// GlobalSchemaPrefix is the prefix of the wallet_schema value.
const GlobalSchemaPrefix = "global/"

// MinWalletVersion maps schema identifiers to the minimum wallet release
// that understands them. Used for upgrade hints on newer files.
var MinWalletVersion = map[string]string{
	"global/1": "0.1.0",
}

// FormatGlobalSchema creates a global schema string from a version number.
// Example: FormatGlobalSchema(1) returns "global/1"
func FormatGlobalSchema(v int) string {
	return fmt.Sprintf("%s%d", GlobalSchemaPrefix, v)
}

// ParseGlobalVersion extracts the version number from a global schema string.
// Returns an error if the format is invalid.
func ParseGlobalVersion(schema string) (int, error) {
	if !strings.HasPrefix(schema, GlobalSchemaPrefix) {
		return 0, fmt.Errorf("invalid global schema format: %q (expected %sN)", schema, GlobalSchemaPrefix)
	}
	versionStr := strings.TrimPrefix(schema, GlobalSchemaPrefix)
	v, err := strconv.Atoi(versionStr)
	if err != nil {
		return 0, fmt.Errorf("invalid global schema version: %q", versionStr)
	}
	if v < 1 {
		return 0, fmt.Errorf("invalid global schema version: %d (must be >= 1)", v)
	}
	return v, nil
}

// CurrentGlobalSchema returns the current global schema string.
func CurrentGlobalSchema() string {
	return FormatGlobalSchema(CurrentGlobalVersion)
}
