// Package ui holds the terminal styling shared by the cpx commands.
//
// A [Palette] renders headings, status lines and hints with [lipgloss] styles.
// [Difficulty] colors a problem difficulty the same way everywhere it is printed.
package ui
