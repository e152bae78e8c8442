// Package domain models athletics world record data scraped from the
// Wikipedia "List of world records in athletics" page.
//
// # Data Source
//
// The page carries one `table.wikitable` per sex: the first is men's
// outdoor records, the second women's. Each table opens with a caption
// row and a header row, then one row per ratified record. Events with
// several accepted performances (ties, multiple timing methods) use a
// row-spanned event cell.
//
// # Wikipedia Conventions
//
// Flagged rows:
//
//	Rows (or single cells) shaded pink or pale cyan (#cef6f5) are records
//	awaiting ratification or otherwise not part of the canonical list.
//	They are dropped during extraction.
//
// Event names:
//
//	Free text with optional footnote markers, e.g. "Marathon[e]".
//	Markers are stripped by [CleanEventName].
//
// Date format:
//
//	"2 Jan 2006" for record dates, e.g. "16 Aug 2009". Unparseable dates
//	are treated as missing, never as errors.
//
// Performance format:
//
//	Track events use "s.ss", "m:ss.ss" or "h:mm:ss". Field events use
//	"8.95 m". See [ParsePerformanceSeconds] and [ParseDistanceMetres].
//
// # Reference Data
//
// Nationality is an IOC three-letter code joined against a
// country/continent list keyed by ISO alpha-3. The two mostly agree; the
// known gaps (DEN vs DNK, the Soviet Union) are patched in
// [NewContinentIndex]. Birth dates are keyed by athlete name and matched
// exactly first, then by Jaro-Winkler similarity.
package domain
