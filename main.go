// =============================================================================
// CSV to EDI Mapper - Main Entry Point
// =============================================================================
//
// USAGE:
//   edimapper process       - Map every CSV order in the input directory
//   edimapper validate      - Check the structure of order CSV files
//   edimapper version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Mapping engine, configuration, CSV and XML handling
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/CSV-to-EDI-mapper/cmd"
)

func main() {
	cmd.Execute()
}
