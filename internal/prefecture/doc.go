// Package prefecture maps Japanese prefecture names to canonical English
// identifiers.
//
// Both the short form (e.g. 愛知) and the long form with its 都道府県 suffix
// (e.g. 愛知県) resolve to the same canonical name. Names returns the 47
// canonical names in the fixed alphabetical order that the summary sheet rows
// are laid out in; that order is an external contract and must not change.
package prefecture
