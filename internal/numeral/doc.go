// Package numeral parses the count expressions used in Japanese news copy.
//
// Reports mix half-width and full-width digits, group separators and the
// 万 (ten-thousands) unit, e.g. "１万２３４５人" or "1,234人". The numeral
// package normalizes digit width and turns those expressions into integers.
package numeral
