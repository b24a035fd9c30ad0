package scoring

// FeatureCount is the width of the model input vector.
const FeatureCount = 4

// Features is the normalized input vector for the violation model:
// seller verification flag, image count, description length and category,
// scaled the same way at training and inference time so the synchronous
// and asynchronous paths always agree bit-for-bit.
type Features [FeatureCount]float64

// Extract builds the feature vector for an advertisement.
func Extract(sellerVerified bool, imagesQty int, description string, category int) Features {
	verified := 0.0
	if sellerVerified {
		verified = 1.0
	}
	return Features{
		verified,
		float64(imagesQty) / 10,
		float64(len(description)) / 1000,
		float64(category) / 100,
	}
}
