package bundle

import (
	"fmt"
	"strconv"
	"strings"
)

// formatSigma renders a sigma column value, mapping the null sentinel to N/A.
func formatSigma(sigma float64) string {
	if IsNullSigma(sigma) {
		return "N/A"
	}
	return strconv.FormatFloat(sigma, 'g', 8, 64)
}

// ParameterValues collects the current polynomial coefficients in layout
// order and native units: positions in their linear unit, angles in radians.
func (o *Observation) ParameterValues() []float64 {
	values := make([]float64, 0, o.layout.NumberParameters())

	if o.layout.PositionTerms() > 0 && o.trajectory != nil {
		coefX, coefY, coefZ := o.trajectory.Polynomial()
		terms := o.layout.PositionTerms()
		for _, coefs := range [][]float64{coefX, coefY, coefZ} {
			// The ephemeris degree may still trail the solve degree before
			// initialization; missing high-order terms read as zero.
			row := make([]float64, terms)
			copy(row, coefs)
			values = append(values, row...)
		}
	} else {
		values = append(values, make([]float64, o.layout.NumberPositionParameters())...)
	}

	if o.layout.AngleTerms() > 0 && o.rotation != nil {
		coefRA, coefDec, coefTwist := o.rotation.Polynomial()
		angleSets := [][]float64{coefRA, coefDec}
		if o.layout.NumberPointingParameters() == 3*o.layout.AngleTerms() {
			angleSets = append(angleSets, coefTwist)
		}
		terms := o.layout.AngleTerms()
		for _, coefs := range angleSets {
			row := make([]float64, terms)
			copy(row, coefs)
			values = append(values, row...)
		}
	} else {
		values = append(values, make([]float64, o.layout.NumberPointingParameters())...)
	}

	return values
}

// FormatBundleOutputString renders the per-parameter adjustment table: label,
// value before correction, cumulative correction, final value, a-priori
// sigma, adjusted sigma. Angle rows are reported in degrees. The adjusted
// sigma column carries N/A unless errorPropagation is set. Each row ends
// with a line break.
func (o *Observation) FormatBundleOutputString(errorPropagation bool) string {
	if o.settings == nil {
		return ""
	}

	values := o.ParameterValues()
	nPosition := o.layout.NumberPositionParameters()
	nTotal := o.layout.NumberParameters()

	var sb strings.Builder
	for i := 0; i < nTotal; i++ {
		value := values[i]
		correction := o.corrections[i]
		adjusted := o.adjustedSigmas[i]
		if i >= nPosition {
			// Angle state is stored in radians but reported in degrees.
			value *= rad2Deg
			correction *= rad2Deg
			if !IsNullSigma(adjusted) {
				adjusted *= rad2Deg
			}
		}

		adjustedField := "N/A"
		if errorPropagation && !IsNullSigma(adjusted) {
			adjustedField = strconv.FormatFloat(adjusted, 'f', 8, 64)
		}

		fmt.Fprintf(&sb, "%s%17.8f%21.8f%20.8f%18s%18s\n",
			o.layout.Name(i),
			value-correction,
			correction,
			value,
			formatSigma(o.aprioriSigmas[i]),
			adjustedField)
	}
	return sb.String()
}

// FormatHeader renders the observation banner printed above the parameter
// table: the observation number, instrument and member image serials.
func (o *Observation) FormatHeader() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Observation %s (%s), %d image(s)\n",
		o.observationNumber, o.instrumentID, len(o.images))
	for i, serial := range o.serialNumbers {
		fmt.Fprintf(&sb, "  %s  %s\n", serial, o.imageNames[i])
	}
	return sb.String()
}

// ParameterList returns the parameter labels in layout order for the
// correlation matrix report.
func (o *Observation) ParameterList() []string {
	return o.layout.Names()
}
