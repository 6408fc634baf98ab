// Package matrix holds the table of named reference configurations: which
// configuration headers get tested, which get an interoperability pass or an
// options-test pass, and which get a second run with the crypto facade
// enabled. The built-in table can be extended or overridden by HCL overlay
// files supplied on the command line.
package matrix
