// Package contract checks the data providers against recorded upstream
// documents. Requests are answered from testdata, so no network is used,
// and the parsed results are compared with golden chat output.
//
// Record a fixture with cmd/fetchdata -output, then refresh the golden
// files with: RECORD=1 go test -tags=contract ./tests/contract/...
//
// Run with: go test -tags=contract ./tests/contract/...
package contract
