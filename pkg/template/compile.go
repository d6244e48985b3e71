package template

// Compile parses source and generates Go code for it. It is a pure
// function of its inputs: the same source and options always produce the
// same output. The returned error is a *ParseError or a *GenerationError.
func Compile(source string, opts Options) ([]byte, error) {
	file, err := Parse(opts.Filename, source)
	if err != nil {
		return nil, err
	}
	return Generate(file, opts)
}

// ComponentNames lists the component names declared in source, in
// declaration order. Build tooling uses it to collect siblings before
// compiling a package.
func ComponentNames(file *File) []string {
	names := make([]string, 0, len(file.Components))
	for _, c := range file.Components {
		names = append(names, c.Name)
	}
	return names
}
