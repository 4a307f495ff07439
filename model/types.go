package model

import (
	"cmp"
	"fmt"
)

// Range is a closed interval [Min, Max].
type Range[T cmp.Ordered] struct {
	Min T
	Max T
}

// NewRange returns the closed interval spanning a and b in either order.
func NewRange[T cmp.Ordered](a, b T) Range[T] {
	return Range[T]{Min: min(a, b), Max: max(a, b)}
}

// Contains reports whether v lies within the interval, bounds included.
func (r Range[T]) Contains(v T) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range[T]) String() string {
	return fmt.Sprintf("[%v..%v]", r.Min, r.Max)
}

// ChromatogramType classifies a chromatogram.
type ChromatogramType uint8

const (
	ChromatogramUnknown ChromatogramType = iota
	ChromatogramTIC                      // total ion current
	ChromatogramBPC                      // base peak
	ChromatogramXIC                      // extracted ion
	ChromatogramSIC                      // selected ion current
	ChromatogramSIM                      // selected ion monitoring
	ChromatogramMRMSRM                   // multiple or selected reaction monitoring
)

func (t ChromatogramType) String() string {
	switch t {
	case ChromatogramTIC:
		return "TIC"
	case ChromatogramBPC:
		return "BPC"
	case ChromatogramXIC:
		return "XIC"
	case ChromatogramSIC:
		return "SIC"
	case ChromatogramSIM:
		return "SIM"
	case ChromatogramMRMSRM:
		return "MRM_SRM"
	default:
		return "UNKNOWN"
	}
}

// SeparationType is the chromatographic separation a chromatogram comes from.
type SeparationType uint8

const (
	SeparationUnknown SeparationType = iota
	SeparationGC
	SeparationGCxGC
	SeparationLC
	SeparationUHPLC
	SeparationHILIC
	SeparationLCxLC
	SeparationCE
	SeparationIMS
)

func (s SeparationType) String() string {
	switch s {
	case SeparationGC:
		return "GC"
	case SeparationGCxGC:
		return "GCxGC"
	case SeparationLC:
		return "LC"
	case SeparationUHPLC:
		return "UHPLC"
	case SeparationHILIC:
		return "HILIC"
	case SeparationLCxLC:
		return "LCxLC"
	case SeparationCE:
		return "CE"
	case SeparationIMS:
		return "IMS"
	default:
		return "UNKNOWN"
	}
}

// SpectrumType tells how the peaks of a spectrum were acquired.
type SpectrumType uint8

const (
	SpectrumUnknown SpectrumType = iota
	SpectrumCentroided
	SpectrumProfile
	SpectrumThresholded
)

func (t SpectrumType) String() string {
	switch t {
	case SpectrumCentroided:
		return "CENTROIDED"
	case SpectrumProfile:
		return "PROFILE"
	case SpectrumThresholded:
		return "THRESHOLDED"
	default:
		return "UNKNOWN"
	}
}

// ScanType is the acquisition mode of a scan.
type ScanType uint8

const (
	ScanUnknown ScanType = iota
	ScanFull
	ScanSIM
	ScanMRMSRM
)

func (t ScanType) String() string {
	switch t {
	case ScanFull:
		return "FULLMS"
	case ScanSIM:
		return "SIM"
	case ScanMRMSRM:
		return "MRM_SRM"
	default:
		return "UNKNOWN"
	}
}

// Polarity is the ionization polarity of a scan.
type Polarity uint8

const (
	PolarityUnknown Polarity = iota
	PolarityPositive
	PolarityNegative
	PolarityNeutral
)

func (p Polarity) String() string {
	switch p {
	case PolarityPositive:
		return "+"
	case PolarityNegative:
		return "-"
	case PolarityNeutral:
		return "0"
	default:
		return "?"
	}
}

// ActivationType is the fragmentation method of an activation step.
type ActivationType uint8

const (
	ActivationUnknown ActivationType = iota
	ActivationCID
	ActivationHCD
	ActivationETD
	ActivationECD
	ActivationIRMPD
)

func (t ActivationType) String() string {
	switch t {
	case ActivationCID:
		return "CID"
	case ActivationHCD:
		return "HCD"
	case ActivationETD:
		return "ETD"
	case ActivationECD:
		return "ECD"
	case ActivationIRMPD:
		return "IRMPD"
	default:
		return "UNKNOWN"
	}
}

// MsFunction names an acquisition function, e.g. "ms" at MS level 1.
type MsFunction struct {
	Name    string
	MsLevel int // 0 when unknown
}

func (f MsFunction) String() string {
	if f.MsLevel == 0 {
		return f.Name
	}

	return fmt.Sprintf("%s%d", f.Name, f.MsLevel)
}

// ActivationInfo describes one fragmentation step.
type ActivationInfo struct {
	Type   ActivationType
	Energy *float64 // collision energy in eV, nil when not reported
}

// IsolationInfo describes a precursor isolation window.
type IsolationInfo struct {
	MzRange         Range[float64]
	IonInjectTime   *float32 // ms
	PrecursorMz     *float64
	PrecursorCharge *int
	Activation      *ActivationInfo
}

// IonAnnotation identifies the compound a chromatogram or feature is assigned to.
type IonAnnotation struct {
	ID          string
	Description string
	Formula     string
	ExpectedMz  *float64
	ExpectedRT  *float32
}

// PSI-MS accessions of the entity metadata recognized by the parsers feeding this package.
const (
	AccessionTICChromatogram = "MS:1000235"
	AccessionBPChromatogram  = "MS:1000628"
	AccessionSICChromatogram = "MS:1000627"
	AccessionSIMChromatogram = "MS:1001472"
	AccessionSRMChromatogram = "MS:1001473"
	AccessionCentroid        = "MS:1000127"
	AccessionProfile         = "MS:1000128"
	AccessionNegativeScan    = "MS:1000129"
	AccessionPositiveScan    = "MS:1000130"
	AccessionCID             = "MS:1000133"
	AccessionETD             = "MS:1000598"
	AccessionECD             = "MS:1000250"
	AccessionHCD             = "MS:1000422"
	AccessionIRMPD           = "MS:1000262"
)

var chromatogramTypeByAccession = map[string]ChromatogramType{
	AccessionTICChromatogram: ChromatogramTIC,
	AccessionBPChromatogram:  ChromatogramBPC,
	AccessionSICChromatogram: ChromatogramSIC,
	AccessionSIMChromatogram: ChromatogramSIM,
	AccessionSRMChromatogram: ChromatogramMRMSRM,
}

var activationByAccession = map[string]ActivationType{
	AccessionCID:   ActivationCID,
	AccessionETD:   ActivationETD,
	AccessionECD:   ActivationECD,
	AccessionHCD:   ActivationHCD,
	AccessionIRMPD: ActivationIRMPD,
}

// ChromatogramTypeFromAccession maps a chromatogram type accession.
// Unrecognized accessions map to ChromatogramUnknown.
func ChromatogramTypeFromAccession(accession string) ChromatogramType {
	return chromatogramTypeByAccession[accession]
}

// SpectrumTypeFromAccession maps a spectrum representation accession.
func SpectrumTypeFromAccession(accession string) SpectrumType {
	switch accession {
	case AccessionCentroid:
		return SpectrumCentroided
	case AccessionProfile:
		return SpectrumProfile
	default:
		return SpectrumUnknown
	}
}

// PolarityFromAccession maps a scan polarity accession.
func PolarityFromAccession(accession string) Polarity {
	switch accession {
	case AccessionPositiveScan:
		return PolarityPositive
	case AccessionNegativeScan:
		return PolarityNegative
	default:
		return PolarityUnknown
	}
}

// ActivationTypeFromAccession maps a dissociation method accession.
func ActivationTypeFromAccession(accession string) ActivationType {
	return activationByAccession[accession]
}
