// Package protocol decodes terminal mouse reports into pointer events.
//
// Terminals report mouse activity as escape sequences in one of several
// wire formats. This package understands four of them:
//
//   - SGR (DECSET 1006): ESC [ < button ; x ; y M/m — numeric, unambiguous,
//     and the only format that can distinguish press from release.
//   - UTF-8 (DECSET 1005): ESC [ M followed by three characters, each value
//     offset by +32. Coordinates are limited to 223 columns/rows.
//   - urxvt (DECSET 1015): ESC [ button ; x ; y M — numeric like SGR but
//     without the '<' marker and without a release indicator.
//   - legacy (X10): identical on the wire to the UTF-8 form and decoded by
//     the same path.
//
// Formats are tried in that fixed precedence order. Decoding is stateless;
// a Parser may be shared freely.
//
// # Button Codes
//
// Button codes are bit fields shared by all formats: bits 0-1 select the
// base button (3 means none), bit 2 is Shift, bit 3 is Alt, bit 4 is Ctrl,
// bit 5 marks motion with a button held, and bit 6 marks a wheel event
// (bit 0 then selects up or down).
//
// # Error Taxonomy
//
// Input that matches no grammar is not an error: Parse returns nil. Input
// that matches a grammar's outer shape but carries an unparseable numeric
// field is a decode failure, reported as a *DecodeError so callers can log
// it instead of mistaking a protocol bug for ordinary keyboard input.
package protocol
