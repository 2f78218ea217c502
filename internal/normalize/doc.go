// Package normalize turns raw API deal records into typed, canonicalized
// transactions ordered newest-first.
//
// Coercion rules:
//   - Dates: IG layout "2006-01-02T15:04:05" (UTC), RFC 3339 accepted; bad dates are ParseErrors
//   - Size, open level, close level: invalid -> null, never an error
//   - Profit and loss: currency glyph stripped, then parsed; failure is a ParseError
//
// Instrument names go through an ordered AliasTable (exact, case-insensitive,
// then case-insensitive prefix match).
package normalize
