package cnf

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Problem is a CNF formula read from DIMACS input.
// see: https://logic.pdmi.ras.ru/~basolver/dimacs.html
type Problem struct {
	Variables int
	Clauses   [][]int
}

var (
	commentLine = regexp.MustCompile(`^c(\s.*)?$`)
	headerLine  = regexp.MustCompile(`^p\s+cnf\s+(\d+)\s+(\d+)$`)
	clauseLine  = regexp.MustCompile(`^(-?\d+\s+)*0$`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// ParseDimacs reads a problem in DIMACS CNF format. The header must
// come before the clauses and its counts must match them.
func ParseDimacs(r io.Reader) (*Problem, error) {
	scanner := bufio.NewScanner(r)

	var (
		problem     *Problem
		wantClauses int
		used        = map[int]struct{}{}
	)
	for scanner.Scan() {
		line := strings.TrimSpace(whitespace.ReplaceAllString(scanner.Text(), " "))
		switch {
		case line == "" || commentLine.MatchString(line):
			continue
		case headerLine.MatchString(line):
			if problem != nil {
				return nil, fmt.Errorf("invalid dimacs format: duplicate header (%s)", line)
			}
			m := headerLine.FindStringSubmatch(line)
			variables, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid number (%s) in statement (%s)", m[1], line)
			}
			wantClauses, err = strconv.Atoi(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid number (%s) in statement (%s)", m[2], line)
			}
			problem = &Problem{Variables: variables, Clauses: make([][]int, 0, wantClauses)}
		case clauseLine.MatchString(line):
			if problem == nil {
				return nil, fmt.Errorf("invalid dimacs format: missing header 'p cnf <variables> <clauses>'")
			}
			clause, err := parseClause(line, problem.Variables)
			if err != nil {
				return nil, fmt.Errorf("invalid clause (%s): %w", line, err)
			}
			for _, lit := range clause {
				if lit < 0 {
					lit = -lit
				}
				used[lit] = struct{}{}
			}
			problem.Clauses = append(problem.Clauses, clause)
		default:
			return nil, fmt.Errorf("invalid dimacs command: %s", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dimacs data: %w", err)
	}

	if problem == nil || problem.Variables == 0 || len(problem.Clauses) == 0 {
		return nil, fmt.Errorf("invalid format: no variables or clauses found")
	}
	if len(problem.Clauses) != wantClauses {
		return nil, fmt.Errorf("invalid format: number of clauses in header differ from the total number of clauses")
	}
	if len(used) != problem.Variables {
		return nil, fmt.Errorf("invalid format: number of variables in header differ from the total number of unique variables found in clauses")
	}
	return problem, nil
}

func parseClause(line string, variables int) ([]int, error) {
	fields := strings.Split(line, " ")
	fields = fields[:len(fields)-1]
	clause := make([]int, 0, len(fields))
	for _, field := range fields {
		lit, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%s is not a number", field)
		}
		if lit == 0 {
			return nil, fmt.Errorf("0 is not a valid variable")
		}
		if lit > variables || lit < -variables {
			return nil, fmt.Errorf("%s is not a valid variable", field)
		}
		clause = append(clause, lit)
	}
	return clause, nil
}
