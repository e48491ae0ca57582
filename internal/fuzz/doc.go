
// Package fuzztests houses Go fuzz harnesses for the checker front door:
// tree documents in both encodings are decoded and, when accepted, analyzed.
// Decoding may reject input, but neither step may panic or hang, and an
// analyzed tree must keep its structural invariants.
//
// Назначение: гонять произвольные байты через treeio.Decode и sema.Analyze.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/treeio, internal/sema, internal/diag, internal/ast,
// internal/testkit.

package fuzztests
