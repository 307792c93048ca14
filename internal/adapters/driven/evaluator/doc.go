// Package evaluator implements the field-mapping FieldEvaluator on top of
// the Common Expression Language (CEL).
//
// Expressions see the harvested record as the map variable "item"
// (item.title, item.content, item.metadata.space, ...). Compiled programs
// are cached per expression and shared across workers.
package evaluator
