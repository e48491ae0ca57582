// Package treeio reads and writes syntax trees produced by an external
// parser.
//
// Two encodings share one node model:
//
//   - JSON (*.json): nested objects, one per node. A node without "file"
//     inherits the file of its parent.
//   - Packed (*.dtree): msgpack, nodes in pre-order with child counts and
//     every name in a per-document string table.
//
// Decoding validates the grammar shape (ast.CheckShape) and leaves every
// expression type unknown; Encode writes the resolved types back.
package treeio
