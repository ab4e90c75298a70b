package types

// CommitTags holds the trailer tags parsed out of a commit message body.
// Fixes keeps the last occurrence; the list tags accumulate in order.
type CommitTags struct {
	Fixes      string   `json:"fixes,omitempty"`
	Cc         []string `json:"cc,omitempty"`
	SignedOff  []string `json:"signed-off-by,omitempty"`
	ReviewedBy []string `json:"reviewed-by,omitempty"`
	AckedBy    []string `json:"acked-by,omitempty"`
	TestedBy   []string `json:"tested-by,omitempty"`
	Links      []string `json:"link,omitempty"`
}

// Commit is the metadata parsed from git show output.
type Commit struct {
	SHA     string     `json:"sha"`
	Author  string     `json:"author"`
	Date    string     `json:"date"`
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	Tags    CommitTags `json:"tags"`
}

// ShortSHA returns the first 12 characters of the SHA, or the whole SHA when
// shorter.
func (c *Commit) ShortSHA() string {
	if len(c.SHA) > 12 {
		return c.SHA[:12]
	}
	return c.SHA
}
