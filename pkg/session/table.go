package session

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

// ParseTableTypes reads a rendered instance table. Each non-blank line
// yields its first whitespace-separated token with the full line kept for display.
func ParseTableTypes(r io.Reader) ([]models.TableType, error) {
	const op = "session.ParseTableTypes"

	var types []models.TableType
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		types = append(types, models.TableType{InstanceType: fields[0], Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.E(errs.KindIO, op, err)
	}
	return types, nil
}

// LoadTableTypes parses the table file at path
func LoadTableTypes(path string) ([]models.TableType, error) {
	const op = "session.LoadTableTypes"

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.E(errs.KindIO, op, err)
	}
	defer f.Close()

	types, err := ParseTableTypes(f)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, errs.Errorf(errs.KindConfig, op, "table %s lists no instance types", path)
	}
	return types, nil
}
