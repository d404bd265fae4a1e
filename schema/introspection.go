package schema

import (
	"context"
	"encoding/json"

	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
)

// IntrospectionQuery is the query GraphiQL issues to load a schema.
const IntrospectionQuery = `
query IntrospectionQuery {
	__schema {
		queryType { name }
		mutationType { name }
		subscriptionType { name }
		types {
			...FullType
		}
		directives {
			name
			description
			locations
			args {
				...InputValue
			}
		}
	}
}
fragment FullType on __Type {
	kind
	name
	description
	fields(includeDeprecated: true) {
		name
		description
		args {
			...InputValue
		}
		type {
			...TypeRef
		}
		isDeprecated
		deprecationReason
	}
	inputFields {
		...InputValue
	}
	interfaces {
		...TypeRef
	}
	enumValues(includeDeprecated: true) {
		name
		description
		isDeprecated
		deprecationReason
	}
	possibleTypes {
		...TypeRef
	}
}
fragment InputValue on __InputValue {
	name
	description
	type { ...TypeRef }
	defaultValue
}
fragment TypeRef on __Type {
	kind
	name
	ofType {
		kind
		name
		ofType {
			kind
			name
			ofType {
				kind
				name
				ofType {
					kind
					name
				}
			}
		}
	}
}`

// ComputeSchemaJSON returns the result of executing IntrospectionQuery
// against s, indented.
func ComputeSchemaJSON(ctx context.Context, s graphql.Schema) ([]byte, error) {
	result := graphql.Do(graphql.Params{
		Schema:        s,
		RequestString: IntrospectionQuery,
		Context:       ctx,
	})
	if result.HasErrors() {
		return nil, errors.Errorf("introspection: %s", result.Errors[0].Message)
	}
	return json.MarshalIndent(result.Data, "", "  ")
}
