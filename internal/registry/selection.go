package registry

// Selection returns the selected ids in registry order. It is independent of the
// active filter: changing the filter keeps selected ids.
func (r *Registry) Selection() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.selection))
	for _, p := range r.all {
		if _, ok := r.selection[p.ID]; ok {
			out = append(out, p.ID)
		}
	}
	return out
}

// Select adds the known ids to the selection and returns how many were added.
func (r *Registry) Select(ids ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, id := range ids {
		if r.index(id) < 0 {
			continue
		}
		if _, ok := r.selection[id]; !ok {
			r.selection[id] = struct{}{}
			added++
		}
	}
	return added
}

func (r *Registry) SelectFiltered() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, p := range r.filtered {
		if _, ok := r.selection[p.ID]; !ok {
			r.selection[p.ID] = struct{}{}
			added++
		}
	}
	return added
}

func (r *Registry) Deselect(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.selection, id)
	}
}

func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selection = make(map[string]struct{})
}
