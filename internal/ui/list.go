package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

var (
	_ list.Item = stagedItem{}
)

// stagedItem wraps [models.StagedFile] to implement [list.Item].
type stagedItem struct {
	file models.StagedFile
}

func (i stagedItem) FilterValue() string { return i.file.Name }
func (i stagedItem) Title() string       { return i.file.Name }
func (i stagedItem) Description() string {
	return fmt.Sprintf("%s • %s", shared.FormatBytes(i.file.Size), i.file.ModTime.Format("2006-01-02 15:04"))
}
