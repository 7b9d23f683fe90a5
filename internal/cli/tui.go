package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// sourceFile is one pickable .tex file with its size for display.
type sourceFile struct {
	Name string
	Size int64
}

// FileListModel is the bubbletea model for interactive source file
// selection. Files are toggled with space and confirmed with enter;
// confirming with nothing toggled selects the file under the cursor.
type FileListModel struct {
	Files     []sourceFile
	Cursor    int
	Marked    map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewFileListModel creates a file list model over the given files.
func NewFileListModel(files []sourceFile) FileListModel {
	return FileListModel{
		Files:  files,
		Marked: make(map[int]bool),
		Height: 15,
	}
}

func (m FileListModel) Init() tea.Cmd {
	return nil
}

func (m FileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			m.Marked[m.Cursor] = !m.Marked[m.Cursor]
		case "a":
			all := len(m.Selected()) < len(m.Files)
			for i := range m.Files {
				m.Marked[i] = all
			}
		case "enter":
			if len(m.Selected()) == 0 {
				m.Marked[m.Cursor] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// Selected returns the marked file names in list order.
func (m FileListModel) Selected() []string {
	var names []string
	for i, f := range m.Files {
		if m.Marked[i] {
			names = append(names, f.Name)
		}
	}
	return names
}

func (m FileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Collections"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ convert  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Files) {
		end = len(m.Files)
	}

	for i := m.Offset; i < end; i++ {
		f := m.Files[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Marked[i] {
			mark = listMarkedStyle.Render("[✓]")
		}

		line := fmt.Sprintf("%s%s %-30s %s", cursor, mark, f.Name,
			listDimStyle.Render(formatSize(f.Size)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d selected",
		m.Cursor+1, len(m.Files), len(m.Selected()))))

	return b.String()
}

// pickSourceFiles runs the interactive picker over the .tex files in dir
// and returns the chosen base names. A nil slice means nothing was
// confirmed and the caller should stop quietly.
func pickSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []sourceFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".tex") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, sourceFile{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	if len(files) == 0 {
		return nil, fmt.Errorf("no .tex files in %s", filepath.Clean(dir))
	}

	prog := tea.NewProgram(NewFileListModel(files))
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}

	model := final.(FileListModel)
	if !model.Confirmed {
		return nil, nil
	}
	return model.Selected(), nil
}

// formatSize renders a byte count the way ls -h does.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
