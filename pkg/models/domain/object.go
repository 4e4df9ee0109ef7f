package domain

// ObjectType is the `type` tag FTS puts on every linked object.
type ObjectType string

const (
	ObjectOrganization  ObjectType = "Organization"
	ObjectLocation      ObjectType = "Location"
	ObjectUsageYear     ObjectType = "UsageYear"
	ObjectPlan          ObjectType = "Plan"
	ObjectProject       ObjectType = "Project"
	ObjectGlobalCluster ObjectType = "GlobalCluster"
	ObjectCluster       ObjectType = "Cluster"
	ObjectEmergency     ObjectType = "Emergency"
)

// Attribute is one key of a linked object with all of its values.
type Attribute struct {
	Key    string
	Values []string
}

// LinkedObject is a source or destination object attached to a flow.
// Every known FTS object type has its own shape; anything else lands in
// UnknownObject.
type LinkedObject interface {
	ObjectType() ObjectType
	Attributes() []Attribute
}

type OrganizationObject struct {
	Name              string
	OrganizationTypes []string
}

func (o OrganizationObject) ObjectType() ObjectType { return ObjectOrganization }

func (o OrganizationObject) Attributes() []Attribute {
	return attributes(
		Attribute{Key: "name", Values: single(o.Name)},
		Attribute{Key: "organizationTypes", Values: o.OrganizationTypes},
	)
}

type LocationObject struct {
	Name string
}

func (o LocationObject) ObjectType() ObjectType { return ObjectLocation }

func (o LocationObject) Attributes() []Attribute {
	return attributes(Attribute{Key: "name", Values: single(o.Name)})
}

type UsageYearObject struct {
	Year string
}

func (o UsageYearObject) ObjectType() ObjectType { return ObjectUsageYear }

func (o UsageYearObject) Attributes() []Attribute {
	return attributes(Attribute{Key: "name", Values: single(o.Year)})
}

// PlanObject is the only object type whose id is carried into the output.
type PlanObject struct {
	ID   string
	Name string
}

func (o PlanObject) ObjectType() ObjectType { return ObjectPlan }

func (o PlanObject) Attributes() []Attribute {
	return attributes(
		Attribute{Key: "id", Values: single(o.ID)},
		Attribute{Key: "name", Values: single(o.Name)},
	)
}

type ProjectObject struct {
	Name string
	Code string
}

func (o ProjectObject) ObjectType() ObjectType { return ObjectProject }

func (o ProjectObject) Attributes() []Attribute {
	return attributes(
		Attribute{Key: "name", Values: single(o.Name)},
		Attribute{Key: "code", Values: single(o.Code)},
	)
}

type GlobalClusterObject struct {
	Name string
}

func (o GlobalClusterObject) ObjectType() ObjectType { return ObjectGlobalCluster }

func (o GlobalClusterObject) Attributes() []Attribute {
	return attributes(Attribute{Key: "name", Values: single(o.Name)})
}

type ClusterObject struct {
	Name string
}

func (o ClusterObject) ObjectType() ObjectType { return ObjectCluster }

func (o ClusterObject) Attributes() []Attribute {
	return attributes(Attribute{Key: "name", Values: single(o.Name)})
}

type EmergencyObject struct {
	Name string
}

func (o EmergencyObject) ObjectType() ObjectType { return ObjectEmergency }

func (o EmergencyObject) Attributes() []Attribute {
	return attributes(Attribute{Key: "name", Values: single(o.Name)})
}

// UnknownObject keeps objects of a type we do not model explicitly.
type UnknownObject struct {
	Type  ObjectType
	Attrs []Attribute
}

func (o UnknownObject) ObjectType() ObjectType { return o.Type }

func (o UnknownObject) Attributes() []Attribute {
	return attributes(o.Attrs...)
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// attributes drops keys without values so absent keys are simply skipped.
func attributes(attrs ...Attribute) []Attribute {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if len(a.Values) == 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}
