package projects_controllers

import (
	projects_services "collabhub/internal/features/projects/services"
)

var projectController *ProjectController
var membershipController *MembershipController

// Setup wires the controllers. projects_services.Setup must run first.
func Setup() {
	projectController = &ProjectController{
		projectService: projects_services.GetProjectService(),
	}
	membershipController = &MembershipController{
		membershipService: projects_services.GetMembershipService(),
	}
}

func GetProjectController() *ProjectController {
	return projectController
}

func GetMembershipController() *MembershipController {
	return membershipController
}
