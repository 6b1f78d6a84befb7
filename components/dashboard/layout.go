package dashboard

// arrange applies the viewer's saved order and hidden set to one area. Widgets
// named in the saved order come first, the rest keep the store order.
func (o LayoutOverrides) arrange(area string, widgets []WidgetInstance) []WidgetInstance {
	order := o.AreaOrder[area]
	if len(order) == 0 && len(o.HiddenWidgets) == 0 {
		return widgets
	}
	rank := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	placed := make([]*WidgetInstance, len(order))
	rest := make([]WidgetInstance, 0, len(widgets))
	for i := range widgets {
		w := widgets[i]
		if o.HiddenWidgets[w.ID] {
			continue
		}
		if pos, ok := rank[w.ID]; ok && placed[pos] == nil {
			placed[pos] = &w
			continue
		}
		rest = append(rest, w)
	}
	out := make([]WidgetInstance, 0, len(widgets))
	for _, w := range placed {
		if w != nil {
			out = append(out, *w)
		}
	}
	return append(out, rest...)
}

// Count reports how many widgets the layout holds across all areas.
func (l Layout) Count() int {
	n := 0
	for _, widgets := range l.Areas {
		n += len(widgets)
	}
	return n
}
