package schema

import "fmt"

// Validate checks the invariants spec.md §3/§9 place on a Configuration:
// every Message/Enum reference resolves within the schema, no two services
// declare the same method name (selectors are flat, spec.md §9), and no
// message directly (non Option/Array-guarded) recurses into itself, which
// would make serialisation non-terminating.
func (c *Configuration) Validate() error {
	for name, fields := range c.Messages {
		for _, f := range fields {
			if err := c.resolves(f.Ty); err != nil {
				return fmt.Errorf("message %s.%s: %w", name, f.Name, err)
			}
		}
	}
	for svc, decl := range c.Services {
		for method, md := range decl.Methods {
			if err := c.resolves(md.Input); err != nil {
				return fmt.Errorf("service %s method %s input: %w", svc, method, err)
			}
			if err := c.resolves(md.Output); err != nil {
				return fmt.Errorf("service %s method %s output: %w", svc, method, err)
			}
		}
	}

	seen := map[string]string{}
	for svc, decl := range c.Services {
		for method := range decl.Methods {
			if other, ok := seen[method]; ok {
				return fmt.Errorf("selector %q declared by both service %s and %s", method, other, svc)
			}
			seen[method] = svc
		}
	}

	for name := range c.Messages {
		if err := c.checkRecursion(name, map[string]bool{}); err != nil {
			return err
		}
	}

	return nil
}

func (c *Configuration) resolves(ty FieldType) error {
	switch ty.Kind {
	case KindMessage:
		if _, ok := c.Messages[ty.Name]; !ok {
			return fmt.Errorf("unresolved message reference %q", ty.Name)
		}
	case KindEnum:
		if _, ok := c.Enums[ty.Name]; !ok {
			return fmt.Errorf("unresolved enum reference %q", ty.Name)
		}
	case KindOption, KindArray:
		return c.resolves(*ty.Inner)
	}
	return nil
}

// checkRecursion rejects a message that recurses into itself through a bare
// Message reference (not guarded by Option/Array), per spec.md §9: "direct
// recursion through a bare Message reference would not terminate and must be
// rejected".
func (c *Configuration) checkRecursion(name string, path map[string]bool) error {
	if path[name] {
		return fmt.Errorf("message %q recurses through a bare message reference", name)
	}
	path[name] = true
	defer delete(path, name)

	for _, f := range c.Messages[name] {
		if f.Ty.Kind == KindMessage {
			if err := c.checkRecursion(f.Ty.Name, path); err != nil {
				return err
			}
		}
	}
	return nil
}
