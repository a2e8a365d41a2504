// Package ingest turns spreadsheet and marketplace order exports into
// content for the renderer.
//
// Tables (CSV or TSV) map columns onto template element ids either by an
// explicit [Mapping] or by [DetectMapping], which matches header names
// against element ids. Each row becomes one content slot or one
// [content.Item]. Order rows may carry a SKU, which a [SKUResolver] turns
// into a template id, and a quantity, which repeats the item.
//
// JSON exports are addressed with JSONPath expressions, see [JSONMapping].
package ingest
