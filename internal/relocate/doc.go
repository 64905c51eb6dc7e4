// Package relocate moves cards of one template ordinal between parallel
// deck hierarchies.
//
// Decks containing the source segment map to their target-segment sibling
// (first occurrence replaced). For every source deck the relocator expands
// notes to cards, keeps the cards matching the configured ordinal, and
// optionally requires them to sit in a specific deck before moving. Planning
// and execution are separate so a dry run can stop after planning.
package relocate
