// Package entry parses software description files into Entry values.
//
// A description is a sectioned key/value text file with [Software Info],
// [Features], [Screenshots], [Download Links], and [Extra Info] sections.
// Parsing is pure: the same text always yields an equal Entry. Malformed
// section headers abort the file; malformed screenshot and download lines
// abort by default and can be skipped and reported instead.
package entry
