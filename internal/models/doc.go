// Package models defines the bill snapshot passed between the service,
// storage and calculator layers.
//
// A Bill holds everything needed to compute who owes what: the people, the
// items and which people share each item, and three charge settings
// (discount, VAT and service charge). Money is always integer cents.
//
// Relationships use ID strings rather than pointers: an Item refers to its
// participants by Person.ID. Snapshots are plain values; copy one with Clone
// before handing it to another goroutine.
package models
