// Package dynamodb implements the DocumentStore port on Amazon DynamoDB
// using a single-table layout: one partition per tenant, hierarchical sort
// keys, and three secondary indexes denormalized onto each item.
package dynamodb

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"schoolhub-backend/internal/repository"
)

// Physical attribute names of the base record.
const (
	attrPK         = "PK"
	attrSK         = "SK"
	attrEntityType = "EntityType"
	attrTenantID   = "TenantID"
	attrVersion    = "Version"
	attrCreatedAt  = "CreatedAt"
	attrCreatedBy  = "CreatedBy"
	attrUpdatedAt  = "UpdatedAt"
	attrUpdatedBy  = "UpdatedBy"
)

var baseAttrs = map[string]bool{
	attrPK: true, attrSK: true, attrEntityType: true, attrTenantID: true,
	attrVersion: true, attrCreatedAt: true, attrCreatedBy: true,
	attrUpdatedAt: true, attrUpdatedBy: true,
	repository.AttrEntityIndexPK: true, repository.AttrEntityIndexSK: true,
	repository.AttrYearIndexPK: true, repository.AttrYearIndexSK: true,
	repository.AttrSchoolCodeIndexPK: true, repository.AttrSchoolCodeIndexSK: true,
}

func stringAttr(value string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: value}
}

func numberAttr(value int) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(value)}
}

func timeAttr(t time.Time) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(time.RFC3339Nano)}
}

// normalizeValue converts patch and attribute values to store-friendly
// representations before marshaling. Timestamps travel as RFC 3339 strings
// so both store implementations round-trip them identically.
func normalizeValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// marshalRecord flattens a Record into one DynamoDB item. Payload attribute
// names must not collide with the base record's attributes.
func marshalRecord(rec *repository.Record) (map[string]types.AttributeValue, error) {
	item := map[string]types.AttributeValue{
		attrPK:         stringAttr(rec.EntityKey.PartitionKey()),
		attrSK:         stringAttr(rec.EntityKey.SortKey()),
		attrEntityType: stringAttr(string(rec.EntityType)),
		attrTenantID:   stringAttr(rec.TenantID),
		attrVersion:    numberAttr(rec.Version),
		attrCreatedAt:  timeAttr(rec.CreatedAt),
		attrCreatedBy:  stringAttr(rec.CreatedBy),
		attrUpdatedAt:  timeAttr(rec.UpdatedAt),
		attrUpdatedBy:  stringAttr(rec.UpdatedBy),
	}

	for name, value := range rec.IndexKeys {
		item[name] = stringAttr(value)
	}

	for name, value := range rec.Attributes {
		if baseAttrs[name] {
			return nil, fmt.Errorf("attribute %q collides with a base record attribute", name)
		}
		av, err := attributevalue.Marshal(normalizeValue(value))
		if err != nil {
			return nil, fmt.Errorf("marshal attribute %q: %w", name, err)
		}
		item[name] = av
	}

	return item, nil
}

// unmarshalRecord rebuilds a Record from a DynamoDB item.
func unmarshalRecord(item map[string]types.AttributeValue) (*repository.Record, error) {
	rec := &repository.Record{
		IndexKeys:  make(map[string]string),
		Attributes: make(map[string]any),
	}

	var pk, sk string
	for name, av := range item {
		switch name {
		case attrPK:
			pk = extractString(av)
		case attrSK:
			sk = extractString(av)
		case attrEntityType:
			rec.EntityType = repository.EntityType(extractString(av))
		case attrTenantID:
			rec.TenantID = extractString(av)
		case attrVersion:
			v, err := extractNumber(av)
			if err != nil {
				return nil, fmt.Errorf("unmarshal version: %w", err)
			}
			rec.Version = v
		case attrCreatedAt:
			rec.CreatedAt = extractTime(av)
		case attrCreatedBy:
			rec.CreatedBy = extractString(av)
		case attrUpdatedAt:
			rec.UpdatedAt = extractTime(av)
		case attrUpdatedBy:
			rec.UpdatedBy = extractString(av)
		case repository.AttrEntityIndexPK, repository.AttrEntityIndexSK,
			repository.AttrYearIndexPK, repository.AttrYearIndexSK,
			repository.AttrSchoolCodeIndexPK, repository.AttrSchoolCodeIndexSK:
			rec.IndexKeys[name] = extractString(av)
		default:
			var value any
			if err := attributevalue.Unmarshal(av, &value); err != nil {
				return nil, fmt.Errorf("unmarshal attribute %q: %w", name, err)
			}
			rec.Attributes[name] = value
		}
	}

	rec.EntityKey = repository.RawKey(pk, sk)
	return rec, nil
}

func extractString(av types.AttributeValue) string {
	if v, ok := av.(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func extractNumber(av types.AttributeValue) (int, error) {
	v, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("expected number attribute")
	}
	return strconv.Atoi(v.Value)
}

func extractTime(av types.AttributeValue) time.Time {
	t, err := time.Parse(time.RFC3339, extractString(av))
	if err != nil {
		return time.Time{}
	}
	return t
}
