package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moat-bus/moatcfg/internal/codes"
	"github.com/moat-bus/moatcfg/internal/eeprom"
)

// view identifies the active editor screen.
type view int

const (
	viewBlocks view = iota
	viewFields
	viewPrompt
	viewAdd
)

// record is one mutable entry of the working image.
type record struct {
	typeID uint8
	name   string
	block  eeprom.Block
}

// blocksKeyMap defines key bindings for the block list view.
type blocksKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Add    key.Binding
	Remove key.Binding
	Save   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k blocksKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Add, k.Remove, k.Save, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k blocksKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Add, k.Remove, k.Save, k.Quit},
	}
}

// fieldsKeyMap defines key bindings for the field list and add views.
type fieldsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k fieldsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k fieldsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
	}
}

// EditorModel is the top-level model of the configuration editor. It holds
// the decoded records of one image and re-encodes them on save.
type EditorModel struct {
	table   *codes.Table
	path    string
	records []record

	currentView view
	blockCursor int
	fieldCursor int
	addCursor   int

	// Prompt state for the field being edited.
	fields    []string
	editField string
	input     textinput.Model

	status    string
	statusErr bool
	dirty     bool

	// UI state
	Width  int
	Height int

	Help       help.Model
	BlocksKeys blocksKeyMap
	FieldsKeys fieldsKeyMap
}

// NewEditorModel creates an editor over the given container's records.
// The container may be freshly decoded from path or empty for a new image;
// save writes the encoded image to path.
func NewEditorModel(path string, table *codes.Table, c *eeprom.Container) EditorModel {
	var records []record
	for _, r := range c.Records() {
		records = append(records, record{typeID: r.TypeID, name: r.Name, block: r.Block})
	}

	input := textinput.New()
	input.CharLimit = 256

	blocksKeys := blocksKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit block"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add block"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove block"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	fieldsKeys := fieldsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}

	return EditorModel{
		table:       table,
		path:        path,
		records:     records,
		currentView: viewBlocks,
		input:       input,
		Help:        help.New(),
		BlocksKeys:  blocksKeys,
		FieldsKeys:  fieldsKeys,
	}
}

// Init initializes the editor
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages and routes them to the active view
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.currentView {
		case viewBlocks:
			return m.updateBlocks(msg)
		case viewFields:
			return m.updateFields(msg)
		case viewPrompt:
			return m.updatePrompt(msg)
		case viewAdd:
			return m.updateAdd(msg)
		}
	}

	return m, nil
}

// updateBlocks handles input on the block list view
func (m EditorModel) updateBlocks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.BlocksKeys.Up):
		if m.blockCursor > 0 {
			m.blockCursor--
		}

	case key.Matches(msg, m.BlocksKeys.Down):
		if m.blockCursor < len(m.records)-1 {
			m.blockCursor++
		}

	case key.Matches(msg, m.BlocksKeys.Select):
		if len(m.records) == 0 {
			break
		}
		m.fields = blockFields(m.records[m.blockCursor].block, m.table)
		m.fieldCursor = 0
		m.currentView = viewFields
		m.status = ""

	case key.Matches(msg, m.BlocksKeys.Add):
		m.addCursor = 0
		m.currentView = viewAdd
		m.status = ""

	case key.Matches(msg, m.BlocksKeys.Remove):
		if len(m.records) == 0 {
			break
		}
		removed := m.records[m.blockCursor]
		m.records = append(m.records[:m.blockCursor], m.records[m.blockCursor+1:]...)
		if m.blockCursor >= len(m.records) && m.blockCursor > 0 {
			m.blockCursor--
		}
		m.dirty = true
		m.setStatus(fmt.Sprintf("removed %s", removed.name), false)

	case key.Matches(msg, m.BlocksKeys.Save):
		if err := m.save(); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.dirty = false
			m.setStatus(fmt.Sprintf("saved %s", m.path), false)
		}

	case key.Matches(msg, m.BlocksKeys.Quit):
		return m, tea.Quit
	}

	return m, nil
}

// updateFields handles input on the field list view
func (m EditorModel) updateFields(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.FieldsKeys.Up):
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}

	case key.Matches(msg, m.FieldsKeys.Down):
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}

	case key.Matches(msg, m.FieldsKeys.Select):
		if len(m.fields) == 0 {
			break
		}
		m.editField = m.fields[m.fieldCursor]
		b := m.records[m.blockCursor].block
		if value, err := b.GetField(m.editField); err == nil {
			m.input.SetValue(value)
		} else {
			m.input.SetValue("")
		}
		m.input.CursorEnd()
		m.input.Focus()
		m.currentView = viewPrompt
		m.status = ""
		return m, textinput.Blink

	case key.Matches(msg, m.FieldsKeys.Back):
		m.currentView = viewBlocks
		m.status = ""
	}

	return m, nil
}

// updatePrompt handles input on the value prompt
func (m EditorModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.currentView = viewFields
		m.status = ""
		return m, nil

	case "enter":
		b := m.records[m.blockCursor].block
		if err := b.SetField(m.editField, m.input.Value()); err != nil {
			// Keep the prompt open so the value can be corrected.
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.dirty = true
		m.input.Blur()
		m.currentView = viewFields
		m.setStatus(fmt.Sprintf("%s set", m.editField), false)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateAdd handles input on the add-block menu
func (m EditorModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.table.BlockNames()

	switch {
	case key.Matches(msg, m.FieldsKeys.Up):
		if m.addCursor > 0 {
			m.addCursor--
		}

	case key.Matches(msg, m.FieldsKeys.Down):
		if m.addCursor < len(names)-1 {
			m.addCursor++
		}

	case key.Matches(msg, m.FieldsKeys.Select):
		if len(names) == 0 {
			break
		}
		name := names[m.addCursor]
		if err := m.addBlock(name); err != nil {
			m.setStatus(err.Error(), true)
			break
		}
		m.blockCursor = len(m.records) - 1
		m.dirty = true
		m.currentView = viewBlocks
		m.setStatus(fmt.Sprintf("added %s", name), false)

	case key.Matches(msg, m.FieldsKeys.Back):
		m.currentView = viewBlocks
		m.status = ""
	}

	return m, nil
}

// addBlock appends a fresh block of the named type to the working image.
func (m *EditorModel) addBlock(name string) error {
	id, kind, ok := m.table.BlockByName(name)
	if !ok {
		return fmt.Errorf("unknown block name %q", name)
	}
	if kind == eeprom.KindCapabilities || kind == eeprom.KindName {
		for _, r := range m.records {
			if r.block.Kind() == kind {
				return fmt.Errorf("%w: %s", eeprom.ErrDuplicateBlock, kind)
			}
		}
	}
	b, err := m.table.NewBlock(name)
	if err != nil {
		return err
	}
	m.records = append(m.records, record{typeID: id, name: name, block: b})
	return nil
}

// save encodes the working records into a fresh container and writes the
// image to the editor's path. Containers are one-shot, so every save builds
// a new one over the same live blocks.
func (m *EditorModel) save() error {
	c := eeprom.NewContainer()
	for _, r := range m.records {
		if err := c.Append(r.typeID, r.name, r.block); err != nil {
			return err
		}
	}
	blob, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, blob, 0o644)
}

func (m *EditorModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// blockFields returns the editable field names of a block. Capability
// blocks expose the registry's full capability universe rather than only
// the values currently set.
func blockFields(b eeprom.Block, table *codes.Table) []string {
	if b.Kind() == eeprom.KindCapabilities {
		return table.Capabilities()
	}
	return b.FieldNames()
}

// View renders the active editor screen
func (m EditorModel) View() string {
	var content, footer string

	switch m.currentView {
	case viewBlocks:
		content = m.viewBlockList()
		footer = m.Help.View(m.BlocksKeys)
	case viewFields:
		content = m.viewFieldList()
		footer = m.Help.View(m.FieldsKeys)
	case viewPrompt:
		content = m.viewValuePrompt()
		footer = "enter apply • esc cancel"
	case viewAdd:
		content = m.viewAddMenu()
		footer = m.Help.View(m.FieldsKeys)
	}

	return RenderApplicationContainer(content, footer, m.Width, m.Height)
}

// viewBlockList renders the record list of the working image
func (m EditorModel) viewBlockList() string {
	var b strings.Builder

	title := m.path
	if m.dirty {
		title += " " + WarningStyle.Render("[modified]")
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(SubtitleStyle.Render("  (empty image — press 'a' to add a block)"))
		b.WriteString("\n")
	}
	for i, r := range m.records {
		line := fmt.Sprintf("%-12s %s  (type %d)", r.name, r.block.Kind(), r.typeID)
		b.WriteString(RenderListItem(line, i == m.blockCursor))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

// viewFieldList renders the fields of the selected block with values
func (m EditorModel) viewFieldList() string {
	var b strings.Builder

	r := m.records[m.blockCursor]
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", r.name, r.block.Kind())))
	b.WriteString("\n\n")

	if len(m.fields) == 0 {
		b.WriteString(SubtitleStyle.Render("  (no editable fields)"))
		b.WriteString("\n")
	}
	for i, f := range m.fields {
		value, err := r.block.GetField(f)
		if err != nil {
			value = SubtitleStyle.Render("(unset)")
		}
		b.WriteString(RenderListItem(fmt.Sprintf("%-12s %s", f, value), i == m.fieldCursor))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

// viewValuePrompt renders the value entry prompt
func (m EditorModel) viewValuePrompt() string {
	var b strings.Builder

	r := m.records[m.blockCursor]
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s › %s", r.name, m.editField)))
	b.WriteString("\n")
	b.WriteString(PromptStyle.Render(m.input.View()))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	return b.String()
}

// viewAddMenu renders the add-block type menu
func (m EditorModel) viewAddMenu() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Add block"))
	b.WriteString("\n\n")

	for i, name := range m.table.BlockNames() {
		_, kind, _ := m.table.BlockByName(name)
		b.WriteString(RenderListItem(fmt.Sprintf("%-12s %s", name, kind), i == m.addCursor))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

func (m EditorModel) renderStatus() string {
	if m.status == "" {
		return ""
	}
	style := SuccessStyle
	if m.statusErr {
		style = ErrorStyle
	}
	return "\n" + style.Render(m.status) + "\n"
}
