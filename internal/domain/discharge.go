package domain

// Discharge returns the wetted cross-section area and the volumetric flow
// rate. Both are non-negative for non-negative inputs.
func Discharge(velocity, riverWidthM, depthM float64) (areaM2, dischargeM3s float64) {
	areaM2 = riverWidthM * depthM
	return areaM2, areaM2 * velocity
}
