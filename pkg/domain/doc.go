// Package domain contains the value types exchanged by the link expansion
// pipeline and its presentation layer: expansion results, the pieces the
// pipeline stages produce, and history entries. They carry no infrastructure
// concerns so every package can share them.
package domain
