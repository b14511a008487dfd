// Package query builds document store filters.
//
// Filters come from three places:
//
//	query.EQ("name", "Alice")                      // built in code
//	query.Parse(`{name: 'Alice', age: {$gt: 30}}`) // mongo shell syntax
//	query.FromObject(struct{ Name string }{"Alice"})
//
// Parse accepts the relaxed syntax the mongo shell prints: unquoted keys,
// single-quoted strings, the ObjectId, ISODate, NumberLong, NumberInt and
// NumberDecimal helpers, and /pattern/flags regular expressions. Plain
// Extended JSON is accepted unchanged.
package query
