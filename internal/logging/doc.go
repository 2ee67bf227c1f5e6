// Package logging provides opt-in file logging with rotation for scribe.
// With --debug, structured JSON logs are written to ~/.scribe/logs/ and can
// be read back with `scribe logs`.
//
// The editor and the MCP server own the terminal and stdout respectively,
// so in those modes logs go to the file only.
package logging
