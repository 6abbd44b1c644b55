package panel

// Transcript senders.
const (
	SenderYou     = "You"
	SenderSnip    = "You (Snip)"
	SenderImage   = "You (Image)"
	SenderModel   = "Gemini"
	SenderError   = "Error"
	SenderSystem  = "System"
	SenderContent = "Page Content"
)

// Entry is one block of the transcript. Loading entries are rewritten in place
// once their call settles.
type Entry struct {
	ID     int    `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
}

func (p *Panel) add(sender, text, image string) Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	e := Entry{ID: p.nextID, Sender: sender, Text: text, Image: image}
	p.entries = append(p.entries, e)
	return e
}

// update rewrites entry id. It returns the zero Entry if the transcript was cleared since.
func (p *Panel) update(id int, sender, text string) Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].ID == id {
			p.entries[i].Sender = sender
			p.entries[i].Text = text
			return p.entries[i]
		}
	}
	return Entry{}
}

func (p *Panel) entry(id int) Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.ID == id {
			return e
		}
	}
	return Entry{}
}

// Entries returns a copy of the transcript.
func (p *Panel) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Greeting reports whether the greeting screen is shown, i.e. the transcript is empty.
func (p *Panel) Greeting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries) == 0
}

// Clear empties the transcript and restores the greeting.
func (p *Panel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
}
