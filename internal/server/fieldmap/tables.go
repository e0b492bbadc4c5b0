package fieldmap

var Users = NewTable("user",
	Field{"id", "id"},
	Field{"email", "email"},
	Field{"plan", "plan"},
	Field{"subscription_id", "subscriptionId"},
	Field{"subscription_status", "subscriptionStatus"},
	Field{"onboarding_status", "onboardingStatus"},
	Field{"created_at", "createdAt"},
	Field{"updated_at", "updatedAt"},
)

var Brands = NewTable("brand",
	Field{"id", "id"},
	Field{"user_id", "userId"},
	Field{"name", "name"},
	Field{"config", "config"},
	Field{"social_links", "socialLinks"},
	Field{"images", "images"},
	Field{"info_questions", "infoQuestions"},
	Field{"brand_mark", "brandMark"},
	Field{"created_at", "createdAt"},
	Field{"updated_at", "updatedAt"},
)

var Designs = NewTable("design",
	Field{"id", "id"},
	Field{"user_id", "userId"},
	Field{"brand_id", "brandId"},
	Field{"asset_type", "assetType"},
	Field{"style_id", "styleId"},
	Field{"template_id", "templateId"},
	Field{"data", "data"},
	Field{"created_at", "createdAt"},
	Field{"updated_at", "updatedAt"},
)

var Posts = NewTable("post",
	Field{"id", "id"},
	Field{"user_id", "userId"},
	Field{"brand_id", "brandId"},
	Field{"content", "content"},
	Field{"hook", "hook"},
	Field{"created_at", "createdAt"},
)
