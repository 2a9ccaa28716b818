package commands

import "github.com/muurk/wifid/internal/params"

// quotedField returns the quoted value of key. A value written bare instead is
// rejected under field rather than read as absent.
func quotedField(args params.Args, key byte, field string, secret bool) (string, error) {
	if !args.HasQuoted(key) {
		if v := args.Bare(key); v != "" {
			if secret {
				return "", NewInvalidSecret(field, v)
			}
			return "", NewInvalidParameter(field, v)
		}
	}
	return args.Quoted(key), nil
}

// bareField returns the bare value of key. A value written only in quotes is
// rejected under field rather than read as absent.
func bareField(args params.Args, key byte, field string) (string, error) {
	v := args.Bare(key)
	if v == "" && args.HasQuoted(key) {
		return "", NewInvalidParameter(field, args.Quoted(key))
	}
	return v, nil
}
