package commands

import "fmt"

// Reply collects the status lines a command writes back to its channel.
type Reply struct {
	lines []string
}

// Msg appends a titled line: echo:<title>#<value>
func (r *Reply) Msg(title, value string) {
	r.lines = append(r.lines, "echo:"+title+"#"+value)
}

// Msgf appends a titled line with a formatted value
func (r *Reply) Msgf(title, format string, args ...any) {
	r.Msg(title, fmt.Sprintf(format, args...))
}

// Text appends an untitled line
func (r *Reply) Text(s string) {
	r.lines = append(r.lines, "echo:"+s)
}

// Error appends the status line for err
func (r *Reply) Error(err error) {
	r.Text(err.Error())
}

// Lines returns the collected lines in order
func (r *Reply) Lines() []string {
	return r.lines
}
