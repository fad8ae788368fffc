// Package tui implements the terminal user interface for the interactive
// configuration editor.
//
// The editor is a full-screen Bubble Tea application following the Elm
// architecture: a single immutable model, explicit state transitions in
// Update, and a pure View. It operates on a decoded configuration image in
// memory and writes the re-encoded image back to disk on save.
//
// # Screen Flow
//
// The editor has three nested views:
//
//  1. Block list: the records of the image in wire order. Enter descends
//     into a block, "a" opens the add menu, "x" removes the selected
//     record, "s" encodes and saves.
//  2. Field list: the fields of the selected block with their current
//     values. Enter opens the value prompt for the highlighted field.
//  3. Value prompt: a bubbles/textinput for the new value. Enter applies
//     it through the block's field validation; a rejected value stays in
//     the prompt with the error shown.
//
// ESC backs out one level; from the block list it quits. Unsaved changes
// are flagged in the header.
//
// # Framework Components
//
//   - bubbles/textinput: value entry
//   - bubbles/help + bubbles/key: context-aware key bindings
//   - lipgloss: styling and the unified screen container
package tui
