package documents

func contractTypeFromText(text string) string {
	switch {
	case containsFold(text, "duree indeterminee", "contrat a duree indeterminee"):
		return ContractCDI
	case containsFold(text, "duree determinee"):
		return ContractCDD
	case containsFold(text, "mission d'interim", "travail temporaire"):
		return ContractInterim
	case containsFold(text, "convention de stage"):
		return ContractInternship
	case containsFold(text, "contrat d'apprentissage"):
		return ContractApprenticeship
	}
	return Unknown
}

func scoreEmploymentContract(in scoreInput) (*AnalysisResult, error) {
	res := newResult(TypeEmploymentContract)
	sig := in.signals

	ct := DetectContractType(in.req.FileName)
	if ct == Unknown {
		ct = contractTypeFromText(sig.Text)
	}
	signed := sig.SignaturePresent || containsFold(sig.Text, "lu et approuve", "signature de l'employeur")
	res.ExtractedData["contractType"] = ct
	res.ExtractedData["pageCount"] = sig.PageCount

	score := 0
	score += res.check("contractTypeDetected", ct != Unknown, 20)
	score += res.check("signaturePresent", signed, 30)
	score += res.check("enoughPages", sig.PageCount >= 2, 20)
	score += res.check("readable", sig.Readable, 15)
	score += res.check("permanent", ct == ContractCDI, 15)
	res.setScore(score)

	if !signed {
		res.warn("No signature detected")
		res.recommend("Upload the signed version of the contract")
	}
	if sig.PageCount < 2 {
		res.warn("Contract seems incomplete (fewer than two pages)")
	}
	switch ct {
	case ContractCDD, ContractInterim, ContractInternship, ContractApprenticeship:
		res.warn("Fixed-term contract: check that it covers the lease start")
	case ContractCDI:
		res.recommend("Add an employer certificate confirming the trial period is over")
	case Unknown:
		res.warn("Contract type not recognised")
	}
	if !sig.Readable {
		res.recommend("Upload a clearer scan of the document")
	}
	return res, nil
}

// Unknown tags are accepted as-is and left for manual review.
func scoreGeneric(t DocumentType) *AnalysisResult {
	res := newResult(t)
	res.Validations["received"] = true
	res.setScore(50)
	res.recommend("Document type not recognised, manual review required")
	return res
}
