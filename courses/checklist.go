package courses

// CanAdvance reports whether every required checklist item is checked.
// Extra checked ids, required or not, never block advancement.
func CanAdvance(checklist []ChecklistItem, checkedIDs []string) bool {
	checked := make(map[string]bool, len(checkedIDs))
	for _, id := range checkedIDs {
		checked[id] = true
	}
	for _, item := range checklist {
		if item.Required && !checked[item.ID] {
			return false
		}
	}
	return true
}

// ToggleChecked adds or removes an item id from the checked set. The list
// behaves as a set: toggling on an already-checked id is a no-op.
func ToggleChecked(checkedIDs []string, itemID string, checked bool) []string {
	out := make([]string, 0, len(checkedIDs)+1)
	present := false
	for _, id := range checkedIDs {
		if id == itemID {
			present = true
			if !checked {
				continue
			}
		}
		out = append(out, id)
	}
	if checked && !present {
		out = append(out, itemID)
	}
	return out
}
