// Package gen generates explicit member tables for host types, so that
// resolution can run without reflecting over them.
//
// For each requested struct type the generated RegisterMembers function
// registers a member.Table holding:
//
//   - every field, exported or not, including fields promoted from
//     embedded structs, as member.FieldOf
//   - every SetX method with one parameter and no result, or an error
//     result, as member.PropertyOf or member.PropertyOfE, with X or GetX as
//     the getter when one of matching type exists
//
// Generated code lives in the package of the types, which is what gives it
// access to unexported fields.
package gen
