// Package prov defines the vocabulary IRIs used by the provenance engine:
// PROV-O for the entity/snapshot pattern, Dublin Core terms for
// descriptions, and the XSD datatypes that appear in generated output.
package prov

// Namespace is the PROV-O base IRI.
const Namespace = "http://www.w3.org/ns/prov#"

// DCTermsNamespace is the Dublin Core terms base IRI.
const DCTermsNamespace = "http://purl.org/dc/terms/"

// RDFNamespace is the RDF syntax base IRI.
const RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// XSDNamespace is the XML Schema datatypes base IRI.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

// PROV-O class and property IRIs.
const (
	// Entity is the class of provenance snapshot entities.
	Entity = Namespace + "Entity"

	// GeneratedAtTime records when a snapshot was captured.
	GeneratedAtTime = Namespace + "generatedAtTime"

	// WasAttributedTo links a snapshot to its responsible agent.
	WasAttributedTo = Namespace + "wasAttributedTo"

	// SpecializationOf links a snapshot back to the subject it captures.
	SpecializationOf = Namespace + "specializationOf"

	// WasDerivedFrom links a snapshot to its immediate predecessor.
	WasDerivedFrom = Namespace + "wasDerivedFrom"

	// HadPrimarySource links a snapshot to the primary source of its data.
	HadPrimarySource = Namespace + "hadPrimarySource"
)

// RDFType is rdf:type.
const RDFType = RDFNamespace + "type"

// Description is dcterms:description.
const Description = DCTermsNamespace + "description"

// XSDDateTime is the datatype of generation timestamps.
const XSDDateTime = XSDNamespace + "dateTime"
