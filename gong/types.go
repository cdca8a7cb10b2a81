package gong

// Call is a single call record from the Gong API with its participants
type Call struct {
	MetaData CallMetaData `json:"metaData"`
	Parties  []Party      `json:"parties"`
}

// ID returns the call identifier
func (c *Call) ID() string {
	return c.MetaData.ID
}

// CallMetaData holds the call-level metadata exposed by /v2/calls/extensive
type CallMetaData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Started   string `json:"started"`  // ISO 8601
	Duration  int    `json:"duration"` // seconds
	URL       string `json:"url"`
	Direction string `json:"direction,omitempty"`
	System    string `json:"system,omitempty"`
}

// Party is a call participant. Gong exposes several overlapping
// identifier fields depending on how the participant joined.
type Party struct {
	ID           string `json:"id,omitempty"`
	SpeakerID    string `json:"speakerId,omitempty"`
	UserID       string `json:"userId,omitempty"`
	PartyID      string `json:"partyId,omitempty"`
	Name         string `json:"name,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Affiliation  string `json:"affiliation,omitempty"` // "Internal", "External", "Unknown"
	Title        string `json:"title,omitempty"`
}

// DisplayName returns the party name, falling back to the email address
func (p *Party) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.EmailAddress != "" {
		return p.EmailAddress
	}
	return "Unknown"
}

// speakerIDs returns every identifier under which this party may appear
// in transcript monologues
func (p *Party) speakerIDs() []string {
	var ids []string
	for _, id := range []string{p.SpeakerID, p.UserID, p.ID, p.PartyID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Transcript holds the full transcript of one call
type Transcript struct {
	CallID     string      `json:"callId"`
	Transcript []Monologue `json:"transcript"`
}

// Monologue is a contiguous run of sentences by one speaker
type Monologue struct {
	SpeakerID string     `json:"speakerId"`
	Topic     string     `json:"topic,omitempty"`
	Sentences []Sentence `json:"sentences"`
}

// Sentence is a single utterance with millisecond offsets from call start
type Sentence struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Text  string `json:"text"`
}

// Records carries cursor pagination state on list responses
type Records struct {
	TotalRecords      int    `json:"totalRecords"`
	CurrentPageSize   int    `json:"currentPageSize"`
	CurrentPageNumber int    `json:"currentPageNumber"`
	Cursor            string `json:"cursor,omitempty"`
}

// CallsPage is one page of results from /v2/calls/extensive
type CallsPage struct {
	Calls   []Call  `json:"calls"`
	Records Records `json:"records"`
}

// Participant is a cleaned participant entry for tool output
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Participants groups call participants by affiliation
type Participants struct {
	Internal []Participant `json:"internal"`
	External []Participant `json:"external"`
}
