/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// indexEntry is one NAME = TEMPLATE line of a statement.
type indexEntry struct {
	Name     string
	Template string
}

// indexMap parses the NAME = TEMPLATE lines of stmt in order.
func indexMap(stmt storagemodels.Statement) ([]indexEntry, error) {
	var entries []indexEntry
	for _, line := range stmt.Lines() {
		name, template, ok := strings.Cut(line, "=")
		name, template = strings.TrimSpace(name), strings.TrimSpace(template)
		if !ok || name == "" || template == "" {
			return nil, serrors.NewValidationError(stmt.QualifiedID(), fmt.Sprintf("expected NAME = TEMPLATE, got %q", line))
		}
		entries = append(entries, indexEntry{Name: name, Template: template})
	}
	return entries, nil
}

// expandMacros replaces the {Field} macros of every template with the
// matching attribute of av. A macro without a scalar value is an error.
func expandMacros(entries []indexEntry, av map[string]types.AttributeValue) (map[string]string, error) {
	res := make(map[string]string, len(entries))
	for _, entry := range entries {
		var missing string
		expanded := macroPattern.ReplaceAllStringFunc(entry.Template, func(macro string) string {
			key := strings.Trim(macro, "{}")
			val, ok := av[key]
			if !ok {
				missing = key
				return ""
			}
			s, ok := scalar(val)
			if !ok {
				missing = key
			}
			return s
		})
		if missing != "" {
			return nil, serrors.NewValidationError(missing, fmt.Sprintf("no scalar value for macro in %s", entry.Name))
		}
		res[entry.Name] = expanded
	}
	return res, nil
}

func scalar(val types.AttributeValue) (string, bool) {
	switch tv := val.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, true
	case *types.AttributeValueMemberN:
		return tv.Value, true
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("%v", tv.Value), true
	default:
		return "", false
	}
}

// itemKey expands entries against params and returns them as string attributes.
func itemKey(entries []indexEntry, params map[string]any) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	expanded, err := expandMacros(entries, av)
	if err != nil {
		return nil, err
	}
	key := make(map[string]types.AttributeValue, len(expanded))
	for k, v := range expanded {
		key[k] = &types.AttributeValueMemberS{Value: v}
	}
	return key, nil
}
