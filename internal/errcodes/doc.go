// Package errcodes holds the MSU gateway error-code table.
//
// The built-in table is compiled into the binary from codes.yaml and parsed
// once, the first time it is requested. Its entries are placeholders; the
// official MSU table is supplied at startup through LoadFile. A *Table is
// never mutated after it is built, so it can be shared freely between
// goroutines.
//
// Codes have the fixed form "ERR" followed by five digits:
//
//	table := errcodes.Default()
//	if text, ok := table.Lookup("ERR10003"); ok {
//	    fmt.Println(text)
//	}
package errcodes
