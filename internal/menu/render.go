package menu

import (
	"fmt"
	"strings"

	"github.com/gestorzap/botengine/internal/models"
)

const (
	invalidOptionPrefix = "⚠️ Opção inválida. Tente novamente.\n\n"
	backFooter          = "0️⃣ Voltar"
	homeFooter          = "#️⃣ Menu principal"
	defaultListButton   = "Ver opções"
)

// renderText produces the plain-text numbered listing of a menu, grouped by
// optional section headers, with back/home footer lines.
func renderText(item *models.MenuItem, path []*models.MenuItem, children []*models.MenuItem, errorPrefix string) string {
	var sb strings.Builder
	sb.WriteString(errorPrefix)
	if len(path) > 1 {
		titles := make([]string, 0, len(path))
		for _, ancestor := range path {
			titles = append(titles, ancestor.Title)
		}
		sb.WriteString("*" + strings.Join(titles, " › ") + "*\n")
	} else {
		sb.WriteString("*" + item.Title + "*\n")
	}
	if item.Description != "" {
		sb.WriteString(item.Description + "\n")
	}

	lastSection := ""
	for i, child := range children {
		if child.Section != "" && child.Section != lastSection {
			sb.WriteString("\n_" + child.Section + "_\n")
		}
		lastSection = child.Section
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, child.Title))
	}

	sb.WriteString("\n" + backFooter + "\n" + homeFooter)
	return sb.String()
}

// renderList produces the structured list-message form for providers that
// support interactive pickers, with rows grouped into sections.
func renderList(item *models.MenuItem, children []*models.MenuItem) *models.ListMessage {
	list := &models.ListMessage{
		Title:       item.Title,
		Description: item.Description,
		ButtonText:  defaultListButton,
		Footer:      backFooter + " · " + homeFooter,
	}

	sectionIdx := map[string]int{}
	for _, child := range children {
		row := models.ListRow{ID: child.Key, Title: child.Title, Description: child.Description}
		idx, ok := sectionIdx[child.Section]
		if !ok {
			list.Sections = append(list.Sections, models.ListSection{Title: child.Section})
			idx = len(list.Sections) - 1
			sectionIdx[child.Section] = idx
		}
		list.Sections[idx].Rows = append(list.Sections[idx].Rows, row)
	}
	return list
}
