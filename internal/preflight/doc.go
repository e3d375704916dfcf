// Package preflight provides readiness checks for the directories and
// external programs pagesmith depends on.
//
// The CLI "pagesmith status" command runs RunAll and renders the results as
// a table. The "upload" and "watch" commands call CheckHelper before touching
// the inbox so a missing helper fails fast instead of once per image.
//
// Optional checks (the clipboard) never make the overall status fail.
package preflight
