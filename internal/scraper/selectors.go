package scraper

// CSS selectors and page labels for the marketplace. Keeping them in one
// place makes markup changes a one-file fix.
const (
	// listing page
	listingRowLink = "tr.project-row h2 a"

	// detail page
	titleSelector = ".page-title h1"
)

// Arabic labels of the metadata rows on a project page. The extraction
// script matches rows by label text because the panel carries no stable
// per-field classes.
const (
	labelPublished    = "تاريخ النشر"
	labelBudget       = "الميزانية"
	labelDuration     = "مدة التنفيذ"
	labelRegistration = "تاريخ التسجيل"
	labelEmployment   = "معدل التوظيف"
)

// extractScript pulls every detail field in a single Evaluate round trip.
// It returns an object shaped like detailPayload.
const extractScript = `(() => {
	const text = (sel) => {
		const el = document.querySelector(sel);
		return el ? el.textContent.trim() : "";
	};
	const metaValue = (label) => {
		const rows = document.querySelectorAll(".meta-row, table.table-meta tr");
		for (const row of rows) {
			if (row.textContent.includes(label)) {
				const val = row.querySelector(".meta-value, td:last-child");
				if (val) return val.textContent.trim();
			}
		}
		return "";
	};
	return {
		title:              text(".page-title h1"),
		details:            text("#projectDetailsTab .text-wrapper-div"),
		published:          metaValue("` + labelPublished + `"),
		budget:             metaValue("` + labelBudget + `"),
		duration:           metaValue("` + labelDuration + `"),
		owner_name:         text(".profile-details .user-name"),
		owner_registration: metaValue("` + labelRegistration + `"),
		owner_employment:   metaValue("` + labelEmployment + `"),
		bids:               document.querySelectorAll("#project-bids-list .bid").length,
	};
})()`

// detailPayload mirrors the object built by extractScript.
type detailPayload struct {
	Title             string `json:"title"`
	Details           string `json:"details"`
	Published         string `json:"published"`
	Budget            string `json:"budget"`
	Duration          string `json:"duration"`
	OwnerName         string `json:"owner_name"`
	OwnerRegistration string `json:"owner_registration"`
	OwnerEmployment   string `json:"owner_employment"`
	Bids              int    `json:"bids"`
}
