package models

// FieldChange is one coerced profile value destined for a single column.
type FieldChange struct {
	Field  string
	Column string
	Value  interface{}
	Apply  func(u *User)
}

// ProfileUpdate is the normalized write record built from a request body.
// Only fields present in the payload appear in it; ReplaceAddresses is set
// when the payload carried an addresses collection, which then replaces the
// stored set wholesale (an empty Addresses clears it).
type ProfileUpdate struct {
	changes          []FieldChange
	Addresses        []Address
	ReplaceAddresses bool
}

// Set records a change, overriding an earlier change to the same column.
func (p *ProfileUpdate) Set(c FieldChange) {
	for i := range p.changes {
		if p.changes[i].Column == c.Column {
			p.changes[i] = c
			return
		}
	}
	p.changes = append(p.changes, c)
}

// Has reports whether the JSON field was supplied.
func (p *ProfileUpdate) Has(field string) bool {
	for _, c := range p.changes {
		if c.Field == field {
			return true
		}
	}
	return false
}

// Get returns the coerced value for a JSON field.
func (p *ProfileUpdate) Get(field string) (interface{}, bool) {
	for _, c := range p.changes {
		if c.Field == field {
			return c.Value, true
		}
	}
	return nil, false
}

func (p *ProfileUpdate) Len() int {
	return len(p.changes)
}

// Columns returns the column/value map used for sparse UPDATE statements.
func (p *ProfileUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, len(p.changes))
	for _, c := range p.changes {
		cols[c.Column] = c.Value
	}
	return cols
}

// ApplyTo copies every change onto u.
func (p *ProfileUpdate) ApplyTo(u *User) {
	for _, c := range p.changes {
		c.Apply(u)
	}
}

// Lookup identifies a user by identity-provider uid or by email. UID wins when both are set.
type Lookup struct {
	UID   string
	Email string
}

func (l Lookup) IsEmpty() bool {
	return l.UID == "" && l.Email == ""
}

// Column returns the column and value to match on.
func (l Lookup) Column() (string, string) {
	if l.UID != "" {
		return "supabase_uid", l.UID
	}
	return "email", l.Email
}

func (l Lookup) String() string {
	if l.UID != "" {
		return "uid " + l.UID
	}
	return "email " + l.Email
}
